package cfg

type Cfg struct {
	// Storage configuration
	DBPath string

	// Application configuration
	SitesDir            string
	Port                string
	WorkerCount         int
	SchedulerInterval   int
	APIAccessKey        string
	PriceCeiling        float64
	FreshnessWindowDays int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
