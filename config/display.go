package config

import "log"

// PrintConfig prints the loaded configuration at startup
func (c *Config) PrintConfig() {
	log.Println("=== configuration ===")
	log.Printf("PassBi API: %s (timeout: %v)", c.APIBaseURL, c.APITimeout)
	if c.APIToken != "" {
		log.Printf("session token: %s", maskSensitive(c.APIToken))
	} else {
		log.Println("session token: (none, anonymous session)")
	}
	log.Printf("connectivity probe: %s (timeout: %v)", c.ProbeURL, c.ProbeTimeout)
	log.Printf("operator freshness window: %v", c.OperatorFreshness)
	log.Printf("user freshness window: %v", c.UserFreshness)
	log.Printf("minimum refresh interval: %v", c.MinRefreshInterval)
	log.Printf("auto refresh check period: %v", c.AutoRefreshCheck)
	log.Printf("redis: %s (db: %d, prefix: %s)", c.Redis.Addr, c.Redis.DB, c.KeyPrefix)
	if c.ElasticsearchURL != "" {
		log.Printf("sync journal: %s (index: %s)", c.ElasticsearchURL, c.JournalIndex)
	} else {
		log.Println("sync journal: disabled")
	}
	log.Printf("web port: %d", c.WebPort)
	log.Println("=====================")
}
