package cmd

import (
	"path/filepath"
	"strings"

	"github.com/jsphweid/chordseg/db"
	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
)

var entry db.Metadata

func init() {
	rootCmd.AddCommand(metadataCmd)
	flags := metadataCmd.Flags()
	flags.StringVar(&entry.Title, "title", "", "song title (default the file name)")
	flags.StringVar(&entry.Artist, "artist", "", "artist")
	flags.StringVar(&entry.Release, "release", "", "album or collection")
	flags.UintVar(&entry.Year, "year", 0, "release year")
}

var metadataCmd = &cobra.Command{
	Use:   "metadata <file.mid>",
	Short: "Stores the metadata of a corpus file",
	Long: `Writes title, artist, release and year of a corpus file to the
metadata table that --metadata reads.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, err := db.Connect()
		cobra.CheckErr(err)
		m := metadataFor(args[0], entry)
		cobra.CheckErr(store.PutMetadata(m))
		log.Infof("stored metadata for %v", m.Key)
	},
}

// metadataFor keys m by the file name, which is how corpus lookups find it.
func metadataFor(path string, m db.Metadata) db.Metadata {
	m.Key = filepath.Base(path)
	if m.Title == "" {
		m.Title = strings.TrimSuffix(m.Key, filepath.Ext(m.Key))
	}
	return m
}
