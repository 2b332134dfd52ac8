// Package config provides configuration parsing for the uielement command.
//
// The configuration is stored in uielement.json, or uielement.yaml, next to
// the page it describes. This package handles loading, saving and
// validating it.
//
// # Configuration File Structure
//
//	{
//	  "page": "index.html",
//	  "serve": {
//	    "host": "localhost",
//	    "port": 3000,
//	    "shutdownTimeout": "5s"
//	  },
//	  "metrics": { "enabled": true, "namespace": "uielement" },
//	  "tracing": { "enabled": false, "minDuration": "1ms" },
//	  "reactive": { "maxEffectRunsPerFlush": 10000 },
//	  "log": { "level": "info", "format": "text" },
//	  "fetch": { "timeout": "10s" }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Address())
package config
