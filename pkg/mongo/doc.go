// Package mongo connects the MongoDB driver the document-backed credential
// stores run on: env-driven Config, retrying Connect, and a health probe.
//
//	var cfg mongo.Config
//	if err := env.Parse(&cfg); err != nil {
//	    panic(err)
//	}
//
//	db, err := mongo.ConnectDatabase(ctx, cfg, "credkit")
//	if err != nil {
//	    panic(err)
//	}
//
//	store := mfa.NewMongoStore(db)
package mongo
