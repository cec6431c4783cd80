package main

import (
	"log"
	"os"

	"github.com/campusops/acerp/core"
	"github.com/campusops/acerp/core/account"
	emailsvc "github.com/campusops/acerp/services/email"
	"github.com/campusops/acerp/storage/database"
	"github.com/campusops/acerp/storage/database/pg"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(database.Ping(db))

	// start CLI
	cli := commandLine{
		db:      db,
		acctSvc: account.NewService(conf, pg.NewAccountRepository(db), emailsvc.NewConsoleService(conf)),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
