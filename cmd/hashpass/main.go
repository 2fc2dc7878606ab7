// Command hashpass prints a bcrypt hash for ADMIN_PASSWORD_HASH.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"bus_service/internal/controllers"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: hashpass <password>")
		os.Exit(2)
	}
	hash, err := controllers.HashPassword(os.Args[1])
	if err != nil {
		logrus.WithError(err).Fatal("could not hash password")
	}
	fmt.Println(hash)
}
