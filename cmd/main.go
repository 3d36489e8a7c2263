package main

import (
	"service-marketplace/cmd/bootstrap"

	"github.com/sirupsen/logrus"
)

func main() {
	app, err := bootstrap.New()
	if err != nil {
		logrus.WithError(err).Fatal("service-marketplace failed to start")
	}
	app.Run()
}
