package s3

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/pathstore/blobstore"
)

// CurrentName is the blob name DDBCommitStore serves from DynamoDB.
const CurrentName = "CURRENT"

// ErrConcurrentModification is returned when another writer committed
// the same version first.
var ErrConcurrentModification = errors.New("s3: concurrent modification detected")

// DDBClient is the subset of *dynamodb.Client the commit store uses.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

var _ DDBClient = (*dynamodb.Client)(nil)

// DDBCommitStore is a Store whose CURRENT pointer is an append-only log in
// DynamoDB. Every commit writes the next version with a conditional put,
// so exactly one of two racing writers wins.
//
// Table schema:
//
//	aws dynamodb create-table \
//	  --table-name path-commits \
//	  --attribute-definitions AttributeName=base_uri,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=base_uri,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type DDBCommitStore struct {
	*Store
	ddb     DDBClient
	table   string
	baseURI string
	now     func() time.Time
}

// NewDDBCommitStore wraps store. baseURI partitions the table so several
// stores can share it.
func NewDDBCommitStore(store *Store, ddb DDBClient, table, baseURI string) *DDBCommitStore {
	return &DDBCommitStore{Store: store, ddb: ddb, table: table, baseURI: baseURI, now: time.Now}
}

// Open serves CURRENT from the latest commit and everything else from S3.
func (s *DDBCommitStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	if name != CurrentName {
		return s.Store.Open(ctx, name)
	}
	c, err := s.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if c.Version == 0 {
		return nil, fmt.Errorf("%w: %s", blobstore.ErrNotFound, name)
	}
	return blobstore.BytesBlob([]byte(c.Target)), nil
}

// Put commits CURRENT through DynamoDB and writes everything else to S3.
func (s *DDBCommitStore) Put(ctx context.Context, name string, data []byte) error {
	if name != CurrentName {
		return s.Store.Put(ctx, name, data)
	}
	latest, err := s.Latest(ctx)
	if err != nil {
		return err
	}
	return s.Commit(ctx, latest.Version+1, string(data))
}

// Commit is a single entry of the commit log.
type Commit struct {
	Version     uint64
	Target      string
	CommittedAt time.Time
}

// Latest returns the newest commit, or a zero Commit if none exists.
func (s *DDBCommitStore) Latest(ctx context.Context) (Commit, error) {
	resp, err := s.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("base_uri = :uri"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uri": &types.AttributeValueMemberS{Value: s.baseURI},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
		ConsistentRead:   aws.Bool(true),
	})
	if err != nil {
		return Commit{}, fmt.Errorf("s3: query commits: %w", err)
	}
	if len(resp.Items) == 0 {
		return Commit{}, nil
	}
	return decodeCommit(resp.Items[0])
}

func decodeCommit(item map[string]types.AttributeValue) (Commit, error) {
	v, ok := item["version"].(*types.AttributeValueMemberN)
	if !ok {
		return Commit{}, errors.New("s3: commit item without numeric version")
	}
	target, ok := item["manifest_path"].(*types.AttributeValueMemberS)
	if !ok {
		return Commit{}, errors.New("s3: commit item without manifest_path")
	}
	version, err := strconv.ParseUint(v.Value, 10, 64)
	if err != nil {
		return Commit{}, fmt.Errorf("s3: commit version: %w", err)
	}

	c := Commit{Version: version, Target: target.Value}
	if at, ok := item["committed_at"].(*types.AttributeValueMemberS); ok {
		c.CommittedAt, _ = time.Parse(time.RFC3339Nano, at.Value)
	}
	return c, nil
}

// Commit records target as the given version. It fails with
// ErrConcurrentModification if that version already exists.
func (s *DDBCommitStore) Commit(ctx context.Context, version uint64, target string) error {
	_, err := s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item: map[string]types.AttributeValue{
			"base_uri":      &types.AttributeValueMemberS{Value: s.baseURI},
			"version":       &types.AttributeValueMemberN{Value: strconv.FormatUint(version, 10)},
			"manifest_path": &types.AttributeValueMemberS{Value: target},
			"committed_at":  &types.AttributeValueMemberS{Value: s.now().UTC().Format(time.RFC3339Nano)},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var cond *types.ConditionalCheckFailedException
		if errors.As(err, &cond) {
			return fmt.Errorf("%w: version %d", ErrConcurrentModification, version)
		}
		return fmt.Errorf("s3: commit version %d: %w", version, err)
	}
	return nil
}
