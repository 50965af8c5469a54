package models

import (
	"fmt"

	"gorm.io/gen"
	"gorm.io/gorm"
)

/*
Query-helper generation:

Set GENERATE_MODELS=true and run the server binary. Instead of serving, it
regenerates type-safe query helpers for every table into ./query and exits.
The generated code is only used by one-off maintenance scripts, not by the
server itself, so it is not committed alongside the handlers.
*/

func GenerateModels(db *gorm.DB) {
	if err := db.Exec("SELECT 1").Error; err != nil {
		fmt.Printf("Error connecting to database: %v\n", err)
		return
	}

	g := gen.NewGenerator(gen.Config{
		OutPath:       "./query",
		Mode:          gen.WithoutContext | gen.WithDefaultQuery,
		FieldNullable: true,
	})

	g.UseDB(db)

	g.ApplyBasic(
		User{},
		Project{},
		DownloadRequest{},
		Follow{},
	)

	g.Execute()

	fmt.Println("Model query helpers generated under ./query")
}
