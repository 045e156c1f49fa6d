// Package api exposes the Samonya AIMS Market over HTTP.
//
// # Architecture
//
// The API is built on gorilla/mux and organized into handler groups that
// each register their own routes:
//
//   - CatalogHandlers: plans, tools, legal pages, company info, inspiration
//   - AuthHandlers: OTP delivery and login
//   - SessionHandlers: everything scoped to /sessions/{id}
//
// # Errors
//
// Domain errors map to status codes in one place (writeServiceError).
// Running out of credits is a 402 with "prompt_upgrade": true so clients
// can open the pricing screen; a download on the free tier is a 403 with
// the same flag.
//
// # Usage
//
//	server := api.NewServer(api.Options{
//		Sessions:    manager,
//		Catalog:     holder,
//		Inspiration: rotator,
//		Logger:      logger,
//	})
//	http.ListenAndServe(":8080", server)
package api
