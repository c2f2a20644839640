// Package optionlists serves named option lists as JSON for choice fields
// whose options come from the internal API.
//
// The handler responds to GET and HEAD on <route>/{list} with
// {"data":[{"value":..,"label":..}]}, so a field configured with
// optionSource "api", url "/lists/<name>" and dataPath "data" resolves
// against it. Query and limit parameters filter the list.
package optionlists
