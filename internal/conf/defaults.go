// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "sxcat-go")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/sxcat.log")
	viper.SetDefault("main.log.rotation", RotationDaily)
	viper.SetDefault("main.log.maxsize", 1048576)
	viper.SetDefault("main.log.rotationday", "Sunday")

	viper.SetDefault("api.baseurl", "https://api.sxcat.org")
	// Empty picks the built-in versioned identity.
	viper.SetDefault("api.useragent", "")
	viper.SetDefault("api.timeout", 60*time.Second)
	viper.SetDefault("api.ratelimit", 4.0)
	viper.SetDefault("api.burst", 4)
	viper.SetDefault("api.apikey", "")

	viper.SetDefault("catalogue.flavour", FlavourLive)
	viper.SetDefault("catalogue.detectionthreshold", 0.0)
	viper.SetDefault("catalogue.coneradiusarcsec", 3.0)

	viper.SetDefault("resolver.provider", ResolverCatalogue)
	viper.SetDefault("resolver.sesameurl", "https://cds.unistra.fr/cgi-bin/nph-sesame")
	viper.SetDefault("resolver.cachettl", 6*time.Hour)

	viper.SetDefault("cache.enabled", false)
	viper.SetDefault("cache.path", "sxcat-cache.db")
	viper.SetDefault("cache.ttl", 24*time.Hour)

	viper.SetDefault("download.destdir", ".")
	viper.SetDefault("download.clobber", false)
	viper.SetDefault("download.parallel", 4)
	viper.SetDefault("download.preferftp", false)

	viper.SetDefault("observer.latitude", 0.000)
	viper.SetDefault("observer.longitude", 0.000)

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.listen", "0.0.0.0:8090")
}
