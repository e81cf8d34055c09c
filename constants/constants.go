package constants

import (
	"os"
	"path/filepath"
)

func GetOutDir() string {
	path := os.Getenv("OUT_DIR")
	if path != "" {
		return path
	}
	return "./out"
}

func GetMediaDir() string {
	path := os.Getenv("MEDIA_PATH")
	if path != "" {
		return path
	}

	panic("MEDIA_PATH environment variable is not set!")
}

func GetCountsPath() string {
	path := os.Getenv("COUNTS_PATH")
	if path != "" {
		return path
	}
	return filepath.Join(GetOutDir(), "feature_counts.tsv")
}

func GetModelPath() string {
	path := os.Getenv("MODEL_PATH")
	if path != "" {
		return path
	}
	return filepath.Join(GetOutDir(), "model.gob")
}

func GetInstancesPath() string {
	return filepath.Join(GetOutDir(), "instances.gob")
}

// GetMetadataEndpoint is empty unless a local DynamoDB is used.
func GetMetadataEndpoint() string {
	return os.Getenv("METADATA_ENDPOINT")
}

func GetLogLevel() string {
	return os.Getenv("LOG_LEVEL")
}

const MetadataTable = "chordseg-songs"

// DefaultMaxSegment caps segment length when the corpus does not set it.
const DefaultMaxSegment = 32
