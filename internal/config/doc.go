// Package config manages the console's local configuration.
//
// Configuration lives in .fasttrack/config.json under the directory the
// console runs from. The file is created with defaults on first run:
//
//	{
//	  "api_base_url": "http://localhost:8089/api",
//	  "token": "${FASTTRACK_TOKEN}",
//	  "request_timeout_seconds": 0,
//	  "theme": "gate",
//	  "debug": false,
//	  "debounce_ms": 300,
//	  "min_query_length": 2,
//	  "queue_capacity": 10,
//	  "page_size": 10,
//	  "log_file": ".fasttrack/console.log"
//	}
//
// Values may reference environment variables as $VAR or ${VAR}. A .env file
// next to .fasttrack/ is loaded first; variables already set in the
// environment take precedence over it. Expanded values are never written
// back, so a token kept in the environment stays out of the file.
//
// Example usage:
//
//	manager := config.NewManager(cwd)
//	if err := manager.Load(); err != nil {
//		return err
//	}
//	cfg := manager.Get()
//	if err := cfg.Validate(); err != nil {
//		return err
//	}
//
//	// Update a setting
//	manager.Set("queue_capacity", "12")
package config
