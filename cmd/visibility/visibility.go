package visibility

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tphakala/sxcat-go/internal/conf"
	"github.com/tphakala/sxcat-go/internal/visibility"
)

// Command creates the visibility command for ground-site darkness planning.
func Command(settings *conf.Settings) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "visibility",
		Short: "Report the astronomical darkness window of the observer site",
		Long: `Report sun events and the astronomical darkness window for the observer
site configured under observer.latitude and observer.longitude. All times
are UTC.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(settings, date)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Evening date as YYYY-MM-DD, default today")

	return cmd
}

func run(settings *conf.Settings, date string) error {
	day := time.Now().UTC()
	if date != "" {
		parsed, err := time.Parse(time.DateOnly, date)
		if err != nil {
			return fmt.Errorf("invalid date %q, want YYYY-MM-DD", date)
		}
		day = parsed
	}

	calc := visibility.NewCalculator(settings.Observer.Latitude, settings.Observer.Longitude)

	times, err := calc.TwilightFor(day)
	if err != nil {
		return err
	}
	window, err := calc.DarkWindowFor(day)
	if err != nil {
		return err
	}

	heading := color.New(color.FgYellow).Add(color.Bold).SprintFunc()
	fmt.Println(heading(fmt.Sprintf("site %.4f %+.4f, %s UTC", settings.Observer.Latitude, settings.Observer.Longitude, day.Format(time.DateOnly))))
	fmt.Printf("  astronomical dawn:  %s\n", times.AstronomicalDawn.Format("15:04"))
	fmt.Printf("  sunrise:            %s\n", times.Sunrise.Format("15:04"))
	fmt.Printf("  sunset:             %s\n", times.Sunset.Format("15:04"))
	fmt.Printf("  astronomical dusk:  %s\n", times.AstronomicalDusk.Format("15:04"))
	fmt.Printf("  dark window:        %s to %s\n",
		window.Start.Format("Jan 2 15:04"), window.End.Format("Jan 2 15:04"))

	return nil
}
