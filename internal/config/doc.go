// Package config provides configuration parsing for vango-ssr.
//
// The configuration is stored in vango-ssr.json. Every value can be
// overridden by a VANGO_SSR_* environment variable, which takes precedence
// over the file.
//
// # Configuration File Structure
//
//	{
//	  "render": {
//	    "fallbackFast": false,
//	    "static": false
//	  },
//	  "server": {
//	    "host": "localhost",
//	    "port": 3000,
//	    "renderTimeout": "10s"
//	  },
//	  "export": {
//	    "dir": "dist",
//	    "bucket": "my-site",
//	    "prefix": "pages/",
//	    "region": "eu-west-1"
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "telemetry": {
//	    "endpoint": "localhost:4318",
//	    "serviceName": "vango-ssr"
//	  }
//	}
//
// # Environment Overrides
//
//	VANGO_SSR_RENDER_FALLBACK_FAST=true
//	VANGO_SSR_SERVER_PORT=8080
//	VANGO_SSR_EXPORT_BUCKET=my-site
//	VANGO_SSR_LOG_LEVEL=debug
//	VANGO_SSR_TELEMETRY_OTEL_ENDPOINT=localhost:4318
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
