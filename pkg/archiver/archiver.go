package archiver

import (
	"archive/tar"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"cloud.google.com/go/storage"
	"github.com/fleetpulse/fleetpulse/pkg/database"
	"github.com/fleetpulse/fleetpulse/pkg/fvdf"
	"github.com/rs/zerolog/log"
	"github.com/ulikunitz/xz"
	"go.mongodb.org/mongo-driver/bson"
)

type Archiver struct {
	OutputDirectory     string
	WriteIndividualFile bool
	WriteBundle         bool
	CloudUpload         bool
	CloudBucketName     string
}

// Perform bundles every event past its retention age, or expired and already
// acknowledged, into an archive and then removes them from the database
func (a *Archiver) Perform() {
	log.Info().Interface("archiver", a).Msg("Running Archive process")

	currentTime := time.Now()

	retentionClauses := bson.A{
		bson.M{
			"acknowledged":       true,
			"expirationdatetime": bson.M{"$lt": currentTime},
		},
	}
	for _, severity := range []fvdf.EventSeverity{
		fvdf.EventSeverityInfo, fvdf.EventSeverityWarning,
		fvdf.EventSeverityError, fvdf.EventSeverityCritical,
	} {
		retentionClauses = append(retentionClauses, bson.M{
			"severity":         severity,
			"creationdatetime": bson.M{"$lt": currentTime.Add(-severity.RetentionAge())},
		})
	}
	searchFilter := bson.M{"$or": retentionClauses}

	eventsCollection := database.GetCollection("events")
	cursor, _ := eventsCollection.Find(context.Background(), searchFilter)

	recordCount := 0

	bundleFilename := fmt.Sprintf("%s.tar.xz", currentTime.Format(time.RFC3339))

	var tarWriter *tar.Writer
	var xzWriter *xz.Writer

	if a.WriteBundle {
		bundleFile, err := os.Create(path.Join(a.OutputDirectory, bundleFilename))
		if err != nil {
			log.Error().Err(err).Msg("Failed to open file")
		}

		xzWriter, _ = xz.NewWriter(bundleFile)
		defer xzWriter.Close()
		tarWriter = tar.NewWriter(xzWriter)
		defer tarWriter.Close()
	}

	for cursor.Next(context.TODO()) {
		var event fvdf.Event
		err := cursor.Decode(&event)
		if err != nil {
			log.Error().Err(err).Msg("Failed to decode Event")
			continue
		}

		eventJSON, err := json.Marshal(event)
		if err != nil {
			log.Error().Err(err).Msg("Error converting Event to json")
			continue
		}

		filename := fmt.Sprintf("%s.json", event.PrimaryIdentifier)

		if a.WriteIndividualFile {
			file, err := os.Create(path.Join(a.OutputDirectory, filename))
			if err != nil {
				log.Error().Err(err).Msg("Failed to open file")
			}

			_, err = file.Write(eventJSON)
			if err != nil {
				log.Error().Err(err).Msg("Failed to write to file")
			}

			file.Close()
		}

		if a.WriteBundle {
			memoryFileInfo := MemoryFileInfo{
				MfiName:    filename,
				MfiSize:    int64(len(eventJSON)),
				MfiMode:    777,
				MfiModTime: currentTime,
				MfiIsDir:   false,
			}

			header, err := tar.FileInfoHeader(memoryFileInfo, filename)
			if err != nil {
				log.Error().Err(err).Msg("Failed to generate tar header")
			}

			err = tarWriter.WriteHeader(header)
			if err != nil {
				log.Error().Err(err).Msg("Failed to write tar header")
			}

			_, err = tarWriter.Write(eventJSON)
			if err != nil {
				log.Error().Err(err).Msg("Failed to write to file")
			}
		}

		recordCount += 1
	}

	if a.WriteBundle {
		tarWriter.Close()
		xzWriter.Close()
	}

	log.Info().Int("recordCount", recordCount).Msg("Archive document generation complete")

	if a.CloudUpload {
		a.uploadToStorage(bundleFilename)
	}

	eventsCollection.DeleteMany(context.Background(), searchFilter)
}

func (a *Archiver) uploadToStorage(filename string) {
	fullBundlePath := path.Join(a.OutputDirectory, filename)

	client, err := storage.NewClient(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Could not create GCP storage client")
	}

	bucket := client.Bucket(a.CloudBucketName)
	object := bucket.Object(filename)

	reader, err := os.Open(fullBundlePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open file")
	}
	defer reader.Close()

	writer := object.NewWriter(context.Background())

	io.Copy(writer, reader)

	err = writer.Close()

	if err == nil {
		log.Info().Msgf("Written file %s to bucket %s", object.ObjectName(), object.BucketName())
	} else {
		log.Fatal().Err(err).Msg("Failed to write file to GCP")
	}
}
