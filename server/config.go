package server

// Config is the HTTP front-end configuration.
type Config struct {
	// Address to listen on (e.g., ":8080")
	ListenAddr string

	// Model used when a request names none
	DefaultModel string

	// Temperature used when a request gives none
	DefaultTemperature float64
}
