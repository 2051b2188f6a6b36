package loader

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/svscore/dataset"
)

// Catalog is a dataset-tag to location registry backed by DynamoDB, so
// a caller can name a dataset ("benchmark-sift-1m") rather than know
// which loader and URI currently holds it.
type Catalog struct {
	Client *dynamodb.Client
	Table  string
}

// catalogTagAttr and catalogLocationAttr are the table's key and value
// attribute names.
const (
	catalogTagAttr      = "tag"
	catalogLocationAttr = "location"
)

// Lookup resolves a dataset name to the loader tag (local path or
// scheme-prefixed URI) it currently resides at.
func (c *Catalog) Lookup(ctx context.Context, name string) (string, error) {
	out, err := c.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.Table),
		Key: map[string]types.AttributeValue{
			catalogTagAttr: &types.AttributeValueMemberS{Value: name},
		},
	})
	if err != nil {
		return "", fmt.Errorf("loader: catalog lookup %q: %w", name, err)
	}
	if out.Item == nil {
		return "", fmt.Errorf("loader: catalog has no entry for %q", name)
	}

	loc, ok := out.Item[catalogLocationAttr].(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("loader: catalog entry for %q is missing a location attribute", name)
	}
	return loc.Value, nil
}

// Register writes or overwrites name's location in the catalog.
func (c *Catalog) Register(ctx context.Context, name, location string) error {
	_, err := c.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.Table),
		Item: map[string]types.AttributeValue{
			catalogTagAttr:      &types.AttributeValueMemberS{Value: name},
			catalogLocationAttr: &types.AttributeValueMemberS{Value: location},
		},
	})
	if err != nil {
		return fmt.Errorf("loader: catalog register %q: %w", name, err)
	}
	return nil
}

// ResolveNamed looks name up in the catalog, then resolves the returned
// location against loaders.
func (c *Catalog) ResolveNamed(ctx context.Context, name string, loaders ...Loader) (dataset.Dataset[float32], error) {
	loc, err := c.Lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	return Resolve(ctx, loc, loaders...)
}
