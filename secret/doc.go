// Package secret expands environment references in configuration values,
// so settings like a webhook URL can carry a token without the token living
// in the config file.
package secret
