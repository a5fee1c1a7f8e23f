package s3

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pathstore/blobstore"
)

// fakeDDB keeps commit items in memory and honors the conditional put.
type fakeDDB struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
}

func newFakeDDB() *fakeDDB {
	return &fakeDDB{items: make(map[string]map[string]types.AttributeValue)}
}

func itemKey(item map[string]types.AttributeValue) string {
	return item["base_uri"].(*types.AttributeValueMemberS).Value + ":" + item["version"].(*types.AttributeValueMemberN).Value
}

func (f *fakeDDB) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := itemKey(in.Item)
	if aws.ToString(in.ConditionExpression) == "attribute_not_exists(version)" {
		if _, ok := f.items[key]; ok {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}
		}
	}
	f.items[key] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDDB) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	uri := in.ExpressionAttributeValues[":uri"].(*types.AttributeValueMemberS).Value
	var items []map[string]types.AttributeValue
	for _, item := range f.items {
		if item["base_uri"].(*types.AttributeValueMemberS).Value == uri {
			items = append(items, item)
		}
	}
	version := func(i int) uint64 {
		v, _ := strconv.ParseUint(items[i]["version"].(*types.AttributeValueMemberN).Value, 10, 64)
		return v
	}
	sort.Slice(items, func(i, j int) bool { return version(i) > version(j) })

	if in.Limit != nil && int(*in.Limit) < len(items) {
		items = items[:*in.Limit]
	}
	return &dynamodb.QueryOutput{Items: items}, nil
}

type failingDDB struct{ fakeDDB }

func (f *failingDDB) Query(context.Context, *dynamodb.QueryInput, ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	return nil, errors.New("throttled")
}

func newCommitStore(ddb DDBClient, baseURI string) *DDBCommitStore {
	return NewDDBCommitStore(NewStore(new(MockS3Client), "bucket", "test/"), ddb, "path-commits", baseURI)
}

func readCurrent(t *testing.T, s blobstore.BlobStore) string {
	t.Helper()
	data, err := blobstore.Get(context.Background(), s, CurrentName)
	require.NoError(t, err)
	return string(data)
}

func TestDDBCommitStore_NotFoundBeforeCommit(t *testing.T) {
	_, err := newCommitStore(newFakeDDB(), "s3://bucket/test/").Open(context.Background(), CurrentName)
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestDDBCommitStore_LatestWins(t *testing.T) {
	ctx := context.Background()
	store := newCommitStore(newFakeDDB(), "s3://bucket/test/")
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	store.now = func() time.Time { return at }

	for i := 1; i <= 3; i++ {
		require.NoError(t, store.Put(ctx, CurrentName, []byte(fmt.Sprintf("manifest-%d.json", i))))
	}
	assert.Equal(t, "manifest-3.json", readCurrent(t, store))

	c, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), c.Version)
	assert.Equal(t, at, c.CommittedAt)
}

func TestDDBCommitStore_CommitConflict(t *testing.T) {
	ctx := context.Background()
	store := newCommitStore(newFakeDDB(), "s3://bucket/test/")

	require.NoError(t, store.Commit(ctx, 1, "manifest-1.json"))
	err := store.Commit(ctx, 1, "manifest-other.json")
	require.ErrorIs(t, err, ErrConcurrentModification)
	assert.Equal(t, "manifest-1.json", readCurrent(t, store))
}

func TestDDBCommitStore_ConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	store := newCommitStore(newFakeDDB(), "s3://bucket/test/")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.Put(ctx, CurrentName, []byte(fmt.Sprintf("manifest-%d.json", i)))
			if err != nil && !errors.Is(err, ErrConcurrentModification) {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Positive(t, successes)
	c, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(successes), c.Version)
}

func TestDDBCommitStore_IsolatedNamespaces(t *testing.T) {
	ctx := context.Background()
	ddb := newFakeDDB()
	a := newCommitStore(ddb, "s3://bucket-a/")
	b := newCommitStore(ddb, "s3://bucket-b/")

	require.NoError(t, a.Put(ctx, CurrentName, []byte("manifest-a.json")))
	require.NoError(t, b.Put(ctx, CurrentName, []byte("manifest-b.json")))

	assert.Equal(t, "manifest-a.json", readCurrent(t, a))
	assert.Equal(t, "manifest-b.json", readCurrent(t, b))
}

func TestDDBCommitStore_QueryError(t *testing.T) {
	store := newCommitStore(&failingDDB{}, "s3://bucket/test/")
	err := store.Put(context.Background(), CurrentName, []byte("x"))
	assert.ErrorContains(t, err, "throttled")
}

func TestDecodeCommitRejectsBadItems(t *testing.T) {
	_, err := decodeCommit(map[string]types.AttributeValue{
		"manifest_path": &types.AttributeValueMemberS{Value: "m"},
	})
	assert.Error(t, err)

	_, err = decodeCommit(map[string]types.AttributeValue{
		"version":       &types.AttributeValueMemberN{Value: "x"},
		"manifest_path": &types.AttributeValueMemberS{Value: "m"},
	})
	assert.Error(t, err)
}
