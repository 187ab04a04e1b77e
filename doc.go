// Package traverse provides lazy, chainable access to the fields, properties
// and methods of Go values by name.
//
// A cursor starts at a value or a type and navigates one member at a time.
// Fields and properties are located eagerly but read only when the chain
// moves past them or when GetValue is called, so the last step of a chain can
// be written to as well as read:
//
//	acc, err := traverse.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	n, ok, err := traverse.GetValueAs[int](acc.Create(&server).Field("config").Field("port"))
//	err = acc.Create(&server).Field("config").Field("port").SetValue(8080)
//
// Unknown fields, properties and types do not fail: they yield the void
// cursor, and everything reached from the void cursor is void too. Calling a
// method that does not exist is a *MissingMethodError, because there is no
// sensible value to continue with.
//
// Member lookups go through a cache owned by the Accessor, so repeated
// navigation over the same types scans each type once per member name.
// The reflection details live in package resolver, behind the member.Resolver
// interface, and the cache in package cache.
package traverse
