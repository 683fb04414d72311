// Package config loads metric definitions from a YAML registry file.
//
// A registry file declares every metric an application records, grouped
// by category:
//
//	metrics:
//	  app:
//	    startup_time:
//	      type: timing_distribution
//	      description: Time from process start to first frame.
//	      time_unit: millisecond
//	      lifetime: ping
//	      send_in_pings: [metrics]
//
// Files are validated against a JSON Schema before any metric is
// instantiated, so malformed registries fail loudly at load time rather
// than silently at record time.
package config
