package config

// OutputConfig selects where the schedule and the run report are written.
// "-" means stdout.
type OutputConfig struct {
	SchedulePath string `json:"schedule_path"`
	ReportPath   string `json:"report_path"`
	// CSVPath additionally exports the flat schedule as CSV when set.
	CSVPath string `json:"csv_path"`
}

// SetDefaults writes both documents to stdout unless told otherwise.
func (c *OutputConfig) SetDefaults() {
	if c.SchedulePath == "" {
		c.SchedulePath = "-"
	}
	if c.ReportPath == "" {
		c.ReportPath = "-"
	}
}
