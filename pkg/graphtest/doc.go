// Package graphtest provides an in-process fake of the Microsoft Graph
// calendar events API and the identity platform token endpoint.
//
// It implements just enough of /users/{id}/calendar/events for the events
// package: list with $filter on a single-value extended property or subject,
// $count, $top and $expand, plus get, create, patch and delete. Every
// request is recorded so tests can assert on paths, query strings and
// headers. Canned responses can replace the built-in behavior per route.
//
//	srv := graphtest.NewServer()
//	defer srv.Close()
//
//	client, _ := msgraph.NewClient(msgraph.Config{
//	    Endpoint:      srv.Endpoint(),
//	    AuthorityHost: srv.AuthorityHost(),
//	    AccountID:     "tenant", ClientID: "app", ClientSecret: "secret",
//	})
package graphtest
