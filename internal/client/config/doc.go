// Package config loads runtime configuration for the intramail client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the intramail action API
//	-m string   path of the local mirror database
//	-r int      background refresh interval (seconds)
//	-i int      connectivity probe interval (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "10s" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "http://127.0.0.1:8080/api.php",
//	  "mirror_path": "/home/staff/.intramail/mirror.db",
//	  "refresh_interval": "10s",
//	  "probe_interval": "3s",
//	  "object_storage": {
//	    "endpoint": "http://127.0.0.1:9000",
//	    "region": "us-east-1",
//	    "bucket": "intramail-attachments"
//	  }
//	}
//
// Object storage is optional; when unset, attachments travel through the
// action API's upload endpoint instead.
package config
