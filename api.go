// Package directory stores and reads freelancer profiles in a remote SQLite
// database reached over Hrana-over-HTTP.
//
// Contact and free-text columns are encrypted before they leave the process
// and decrypted after they come back. Which columns are affected is declared
// with struct tags on the model:
//
//	db:"whatsapp"            - column name
//	store.encrypt:"aes"      - encrypt on write
//	load.decrypt:"aes"       - decrypt on read
//	send.mask:"phone"        - mask when contacts are hidden
//	send.redact:""           - replace when contacts are hidden
//
// # Basic Usage
//
//	repo, err := directory.New(directory.Config{Source: config.Env()})
//	if err != nil {
//	    return err
//	}
//
//	id, err := repo.Register(ctx, directory.RegisterInput{
//	    Name:     "Andi Wijaya",
//	    Whatsapp: "081234567890",
//	    Field:    "web-development",
//	    Province: "Jawa Barat",
//	    City:     "Bandung",
//	})
//
//	page, err := repo.List(ctx, directory.ListOptions{Search: "bandung"})
//
// # Failure Results
//
// Handlers should not show raw errors to visitors. ToResult turns any error
// returned by a Repository into a short message for the UI:
//
//	res := directory.ToResult(err)
//	if !res.Success {
//	    render(res.Message)
//	}
//
// # Configuration
//
// DATABASE_URL, AUTH_TOKEN and ENCRYPTION_KEY are read from the configured
// config.Source at the start of every operation, so a platform context that
// changes between requests is honored. See package config.
package directory
