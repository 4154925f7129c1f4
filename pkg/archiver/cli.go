package archiver

import (
	"github.com/fleetpulse/fleetpulse/pkg/database"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "archiver",
		Usage: "Bundles expired events out of the database into archive files",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "archive events past their retention age and delete them",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "output-directory",
						Usage:    "Directory to write output files to",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "individual-files",
						Usage: "Also write each event as its own json file",
					},
					&cli.BoolFlag{
						Name:  "upload",
						Usage: "Upload the bundle to cloud storage once written",
					},
					&cli.StringFlag{
						Name:  "bucket",
						Value: "fleetpulse-event-history",
						Usage: "Cloud storage bucket to upload the bundle to",
					},
				},
				Action: func(c *cli.Context) error {
					if err := database.Connect(); err != nil {
						return err
					}

					eventArchiver := Archiver{
						OutputDirectory:     c.String("output-directory"),
						WriteIndividualFile: c.Bool("individual-files"),
						WriteBundle:         true,
						CloudUpload:         c.Bool("upload"),
						CloudBucketName:     c.String("bucket"),
					}
					eventArchiver.Perform()

					return nil
				},
			},
		},
	}
}
