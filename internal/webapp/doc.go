// Package webapp is a session client for the scenario web application. It
// logs in with a Django-style CSRF form and then reuses the session cookie to
// download the outputs report.
//
// Usage:
//
//	client, err := webapp.New(baseURL, webapp.WithLogger(logger))
//	err = client.Login(ctx, username, password)
//	body, err := client.FetchOutputs(ctx)
package webapp
