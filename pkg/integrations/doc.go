// Package integrations provides the extraction apps TimeNexus can call.
//
// # Overview
//
// Each app has its own subpackage implementing [extract.Service]:
//
//   - [pathlinker]: k-shortest paths through the PathLinker CyREST API
//   - [anat]: Steiner trees and explanatory pathways through the ANAT
//     SOAP server
//
// # Client
//
// The [Client] type holds the HTTP plumbing shared by the apps: default
// headers, JSON and SOAP request bodies, and the observability HTTP hooks.
// It reads whole responses and leaves the interpretation of non-2xx
// statuses to the app, since apps explain failures in their bodies.
// Requests are never retried: a failed slice aborts the extraction.
//
//	c := integrations.NewClient(nil)
//	resp, err := c.PostJSON(ctx, url, params)
//	if err == nil && !resp.OK() {
//	    // app-specific error message
//	}
//
// # Adding an App
//
//  1. Create a subpackage: pkg/integrations/<app>/
//  2. Define request and response structs matching the app protocol
//  3. Implement Name, CheckPreconditions and Extract
//  4. Register the app in the CLI and server service factories
//
// [extract.Service]: github.com/timenexus/timenexus/pkg/extract.Service
package integrations
