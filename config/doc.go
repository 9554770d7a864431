// Package config loads the cfa835 tool configuration with viper.
//
// Values come from a YAML file, CFA835_* environment variables (dots become
// underscores, so serial.port is CFA835_SERIAL_PORT) and command-line flags:
//
//	serial:
//	  port: /dev/ttyUSB0
//	  baud: 115200
//	protocol:
//	  retries: 3
//	  responseTimeout: 500ms
//	logging:
//	  level: debug
//	  file:
//	    filename: /var/log/cfa835.log
//	metrics:
//	  enable: true
//	  addr: :9835
package config
