package db

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/jsphweid/chordseg/constants"
)

// BatchGetItem accepts at most this many keys.
const maxBatch = 100

var ErrNoKey = errors.New("db: metadata without key")

// Metadata describes one corpus file. Key is the file name.
type Metadata struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	Artist  string `json:"artist"`
	Release string `json:"release"`
	Year    uint   `json:"year,omitempty"`
}

type Store struct {
	client dynamodbiface.DynamoDBAPI
	table  string
}

func NewStore(client dynamodbiface.DynamoDBAPI, table string) *Store {
	return &Store{client: client, table: table}
}

// Connect opens the metadata table, against a local endpoint when
// METADATA_ENDPOINT is set.
func Connect() (*Store, error) {
	cfg := &aws.Config{}
	if endpoint := constants.GetMetadataEndpoint(); endpoint != "" {
		cfg.Region = aws.String("localhost")
		cfg.Endpoint = aws.String(endpoint)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("could not create a DynamoDB session: %w", err)
	}
	return NewStore(dynamodb.New(sess), constants.MetadataTable), nil
}

func str(v map[string]*dynamodb.AttributeValue, name string) string {
	if a, ok := v[name]; ok && a.S != nil {
		return *a.S
	}
	return ""
}

// GetMidiMetadatas looks up keys in batches. Keys without an item are
// missing from the result.
func (s *Store) GetMidiMetadatas(keys []string) (map[string]Metadata, error) {
	res := make(map[string]Metadata)
	for lo := 0; lo < len(keys); lo += maxBatch {
		hi := lo + maxBatch
		if hi > len(keys) {
			hi = len(keys)
		}
		var batch []map[string]*dynamodb.AttributeValue
		for _, key := range keys[lo:hi] {
			batch = append(batch, map[string]*dynamodb.AttributeValue{
				"PK": {S: aws.String(key)},
			})
		}
		input := &dynamodb.BatchGetItemInput{
			RequestItems: map[string]*dynamodb.KeysAndAttributes{
				s.table: {Keys: batch},
			},
		}
		dbres, err := s.client.BatchGetItem(input)
		if err != nil {
			return nil, fmt.Errorf("error from DynamoDB: %w", err)
		}
		for _, v := range dbres.Responses[s.table] {
			var m Metadata
			m.Key = str(v, "PK")
			if m.Key == "" {
				return nil, ErrNoKey
			}
			if y, ok := v["Year"]; ok && y.N != nil {
				year, _ := strconv.ParseUint(*y.N, 10, 32)
				m.Year = uint(year)
			}
			m.Artist = str(v, "Artist")
			m.Release = str(v, "Release")
			m.Title = str(v, "Title")
			res[m.Key] = m
		}
	}
	return res, nil
}

func (s *Store) PutMetadata(m Metadata) error {
	if m.Key == "" {
		return ErrNoKey
	}
	item := map[string]*dynamodb.AttributeValue{
		"PK":      {S: aws.String(m.Key)},
		"Title":   {S: aws.String(m.Title)},
		"Artist":  {S: aws.String(m.Artist)},
		"Release": {S: aws.String(m.Release)},
	}
	if m.Year > 0 {
		item["Year"] = &dynamodb.AttributeValue{N: aws.String(strconv.FormatUint(uint64(m.Year), 10))}
	}
	_, err := s.client.PutItem(&dynamodb.PutItemInput{TableName: aws.String(s.table), Item: item})
	if err != nil {
		return fmt.Errorf("error from DynamoDB: %w", err)
	}
	return nil
}
