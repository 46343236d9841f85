/*
Package stunt creates test doubles for collaborator interfaces.

A Double answers intercepted calls according to its kind: a Dummy fails on any
call, a Stub answers from canned outcomes, a Spy additionally records calls for
post-hoc assertions, a Mock additionally holds expectations and self-verifies,
and a Fake delegates to real miniature implementations.

Typed adapters implement the target interface and forward every method to
Double.Invoke. They can be written by hand or generated with the stuntgen
command.

	mock := stunt.NewMock[UserStore]()
	mock.Expect("Save", stunt.Times(1), stunt.Returning("u1", nil))

	exercise(userStoreDouble{mock})

	if err := mock.Verify(); err != nil {
		t.Fatal(err)
	}

The companion package inject resolves graphs of named services with singleton
caching, for wiring units under test together with their doubles.
*/
package stunt
