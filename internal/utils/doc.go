// Package utils holds the configuration and logging plumbing shared by every
// instancectl command: a Viper-backed ConfigurationLoader and a zap
// LoggerFactory.
package utils
