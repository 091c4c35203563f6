package otpstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/ngo-verify-api/internal/config"
	"github.com/ngo-verify-api/internal/domain"
)

// DynamoStore persists OTP records one item per contact, so a write for one
// contact can never clobber another's. The expires_at attribute doubles as the
// table's native TTL; expiry is still checked lazily on read since DynamoDB
// TTL deletion is not immediate.
type DynamoStore struct {
	client    *dynamodb.Client
	tableName string
}

// NewDynamoClient creates a DynamoDB client. When cfg.AWSEndpointURL is set
// (LocalStack), it overrides the endpoint so all traffic goes to the local instance.
func NewDynamoClient(cfg *config.Config) *dynamodb.Client {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}

	if cfg.AWSAccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		panic("failed to load AWS config: " + err.Error())
	}

	clientOpts := []func(*dynamodb.Options){}
	if cfg.AWSEndpointURL != "" {
		clientOpts = append(clientOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointURL)
		})
	}

	return dynamodb.NewFromConfig(awsCfg, clientOpts...)
}

// NewDynamoStore creates a store on tableName, creating the table if it does
// not exist. Safe to call on every startup.
func NewDynamoStore(ctx context.Context, client *dynamodb.Client, tableName string) *DynamoStore {
	ensureTable(ctx, client, tableName)
	return &DynamoStore{client: client, tableName: tableName}
}

func ensureTable(ctx context.Context, client *dynamodb.Client, tableName string) {
	_, err := client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:   aws.String(tableName),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("email"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("email"), KeyType: types.KeyTypeHash},
		},
	})
	if err != nil {
		// ResourceInUseException means the table already exists — that's fine.
		var riue *types.ResourceInUseException
		if !errors.As(err, &riue) {
			slog.Warn("could not create table", "table", tableName, "err", err)
		}
		return
	}
	slog.Info("created table", "table", tableName)

	_, err = client.UpdateTimeToLive(ctx, &dynamodb.UpdateTimeToLiveInput{
		TableName: aws.String(tableName),
		TimeToLiveSpecification: &types.TimeToLiveSpecification{
			Enabled:       aws.Bool(true),
			AttributeName: aws.String("expires_at"),
		},
	})
	if err != nil {
		slog.Warn("could not enable TTL", "table", tableName, "err", err)
	}
}

func (s *DynamoStore) Load(ctx context.Context) (map[string]domain.OTPRecord, error) {
	out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(s.tableName),
	})
	if err != nil {
		slog.Warn("could not scan otp table", "table", s.tableName, "err", err)
		return map[string]domain.OTPRecord{}, nil
	}
	records := make(map[string]domain.OTPRecord, len(out.Items))
	for _, item := range out.Items {
		var rec domain.OTPRecord
		if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
			return nil, fmt.Errorf("unmarshal otp record: %w", err)
		}
		records[rec.Email] = rec
	}
	return records, nil
}

func (s *DynamoStore) Save(ctx context.Context, records map[string]domain.OTPRecord) error {
	existing, err := s.Load(ctx)
	if err != nil {
		return err
	}
	for email := range existing {
		if _, keep := records[email]; !keep {
			if err := s.Delete(ctx, email); err != nil {
				return err
			}
		}
	}
	for email, rec := range records {
		if err := s.Put(ctx, email, rec); err != nil {
			return err
		}
	}
	return nil
}

func (s *DynamoStore) CleanExpired(ctx context.Context) (map[string]domain.OTPRecord, error) {
	records, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	clean := make(map[string]domain.OTPRecord, len(records))
	for email, rec := range records {
		if rec.ExpiredAt(now) {
			if err := s.Delete(ctx, email); err != nil {
				return nil, err
			}
			continue
		}
		clean[email] = rec
	}
	return clean, nil
}

func (s *DynamoStore) Put(ctx context.Context, email string, rec domain.OTPRecord) error {
	rec.Email = email
	item, err := attributevalue.MarshalMap(&rec)
	if err != nil {
		return fmt.Errorf("marshal otp record: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	return err
}

func (s *DynamoStore) Get(ctx context.Context, email string) (*domain.OTPRecord, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       strKey("email", email),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, nil
	}
	var rec domain.OTPRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *DynamoStore) Delete(ctx context.Context, email string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       strKey("email", email),
	})
	return err
}

// strKey builds a DynamoDB primary key map with a single string attribute.
func strKey(name, value string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		name: &types.AttributeValueMemberS{Value: value},
	}
}
