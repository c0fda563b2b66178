package table

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tphakala/sxcat-go/internal/conf"
	"github.com/tphakala/sxcat-go/pkg/sxcat"
)

// Command creates the table command for downloading full catalogue tables.
func Command(settings *conf.Settings) *cobra.Command {
	var ftp bool

	cmd := &cobra.Command{
		Use:   "table [name]",
		Short: "Download a full catalogue table dump",
		Long: `Download a complete catalogue table as served by the archive, for example
"sources" or "datasets". The file lands in the destination directory.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if ftp {
				settings.Download.PreferFTP = true
			}

			client, err := sxcat.NewFromSettings(settings)
			if err != nil {
				return err
			}
			defer client.Close()

			saved, err := client.DownloadTable(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("%s (%s, %d bytes)\n", saved.Path, saved.Outcome, saved.Bytes)
			return nil
		},
	}

	cmd.Flags().BoolVar(&ftp, "ftp", false, "Fetch from the FTP mirror instead of HTTPS")

	return cmd
}
