package main

import (
	log "github.com/sirupsen/logrus"

	"github.com/voidshard/keel/pkg/database"
)

const (
	docMigrate = `Bring the database schema up to date`
)

type optsMigrate struct {
	optsGeneral
	optsDatabase
}

func (c *optsMigrate) Execute(args []string) error {
	c.setup()

	err := database.Migrate(c.dbOptions())
	if err != nil {
		return err
	}

	log.Info("database is up to date")
	return nil
}
