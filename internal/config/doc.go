// Package config provides configuration parsing for rcanvas servers.
//
// The configuration is stored in rcanvas.json. Every field is optional;
// missing values take the defaults from New. The environment variables
// RCANVAS_RESOURCE_PATH, RCANVAS_HOST and RCANVAS_PORT override the
// resource directory, host and port from the file.
//
// # Configuration File Structure
//
//	{
//	  "host": "0.0.0.0",
//	  "port": 8080,
//	  "websocketPath": "/websocket",
//	  "resources": {
//	    "source": "dir",
//	    "dir": "resources",
//	    "maxAge": "1h"
//	  },
//	  "session": {
//	    "framesPerSecond": 30,
//	    "keepAlive": "15s",
//	    "maxSessions": 100
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "path": "/metrics"
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "json"
//	  }
//	}
//
// To serve resources from S3, set "source" to "s3" and fill in
// "resources.s3" with the bucket, prefix, region and optional endpoint.
//
// # Usage
//
//	cfg, err := config.LoadFile("rcanvas.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv := server.New(cfg.ServerConfig(), factory)
package config
