// Package config loads runtime configuration for the shopauth CLI.
//
// Sources, later ones win:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags -a, -i and -t.
//
// JSON durations accept strings like "3s" or integer nanoseconds:
//
//	{
//	  "server_url": "http://localhost:3000",
//	  "data_dir": "data",
//	  "online_check_interval": "3s",
//	  "request_timeout": "10s"
//	}
package config
