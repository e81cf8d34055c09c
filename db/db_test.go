package db

import (
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDynamo struct {
	dynamodbiface.DynamoDBAPI
	items   map[string]map[string]*dynamodb.AttributeValue
	batches int
	fail    error
}

func (f *fakeDynamo) BatchGetItem(in *dynamodb.BatchGetItemInput) (*dynamodb.BatchGetItemOutput, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	f.batches++
	out := &dynamodb.BatchGetItemOutput{Responses: make(map[string][]map[string]*dynamodb.AttributeValue)}
	for table, ka := range in.RequestItems {
		for _, key := range ka.Keys {
			if item, ok := f.items[*key["PK"].S]; ok {
				out.Responses[table] = append(out.Responses[table], item)
			}
		}
	}
	return out, nil
}

func (f *fakeDynamo) PutItem(in *dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error) {
	f.items[*in.Item["PK"].S] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func TestPutAndGet(t *testing.T) {
	assert := assert.New(t)
	fake := &fakeDynamo{items: make(map[string]map[string]*dynamodb.AttributeValue)}
	store := NewStore(fake, "songs")

	m := Metadata{Key: "bach-001.mid", Title: "Chorale 1", Artist: "J.S. Bach", Release: "371 Chorales", Year: 1784}
	require.NoError(t, store.PutMetadata(m))
	require.NoError(t, store.PutMetadata(Metadata{Key: "anon.mid", Title: "Untitled"}))
	assert.ErrorIs(store.PutMetadata(Metadata{Title: "no key"}), ErrNoKey)

	res, err := store.GetMidiMetadatas([]string{"bach-001.mid", "anon.mid", "missing.mid"})
	require.NoError(t, err)
	assert.Equal(m, res["bach-001.mid"])
	assert.Equal(Metadata{Key: "anon.mid", Title: "Untitled"}, res["anon.mid"])
	assert.NotContains(res, "missing.mid")
}

func TestGetBatches(t *testing.T) {
	fake := &fakeDynamo{items: map[string]map[string]*dynamodb.AttributeValue{
		"k": {"PK": {S: aws.String("k")}},
	}}
	keys := make([]string, 250)
	for i := range keys {
		keys[i] = "k"
	}
	res, err := NewStore(fake, "songs").GetMidiMetadatas(keys)
	require.NoError(t, err)
	assert.Equal(t, 3, fake.batches)
	assert.Len(t, res, 1)

	empty, err := NewStore(fake, "songs").GetMidiMetadatas(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGetError(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewStore(&fakeDynamo{fail: boom}, "songs").GetMidiMetadatas([]string{"a"})
	assert.ErrorIs(t, err, boom)
}
