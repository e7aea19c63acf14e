// Package config provides configuration parsing for iq projects.
//
// The configuration is stored in iq.json at the project root.
//
// # Configuration File Structure
//
//	{
//	  "name": "dashboard",
//	  "host": "localhost",
//	  "port": 3000,
//	  "templates": {
//	    "dir": "templates",
//	    "url": "https://cdn.example.com/templates",
//	    "s3": {"bucket": "my-templates", "prefix": "v1/"}
//	  },
//	  "state": {"file": "iq.state.db"},
//	  "dev": {"watch": ["templates"], "hotReload": true},
//	  "metrics": {"enabled": true, "namespace": "iq"}
//	}
//
// # Usage
//
//	cfg, err := config.Find(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Addr:", cfg.Addr())
package config
