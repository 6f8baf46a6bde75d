package cmd

import (
	"io/ioutil"
	"log"
)

func init() {
	// Dependencies that log through the standard "log" package (rather than
	// pkg/logging) would otherwise write straight to standard error; silence
	// that output so it can't bypass notify-relay's own logger.
	log.SetOutput(ioutil.Discard)
}
