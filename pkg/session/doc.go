/*
Package session holds the client-side session state of an iMeet frontend.

A Store is a plain key/value backend (memory, sqlite, redis; see drivers/).
Cache layers the iMeet slot layout on top of it: at most one UserRecord under
either the traditional slot ("user") or the OAuth2 slot ("oauth2User"), plus
the bearer token of a traditional login.

	store := memory.New()
	cache := session.NewCache(store, logger)

	if u := cache.OAuth2User(ctx); u != nil {
		fmt.Println("signed in as", u.DisplayName())
	}

CookieJar keeps the backend's session cookie in the same Store, so a later
process resumes the server-side OAuth2 session. ClearAll leaves it alone;
the backend expires it on logout, and CookieJar.Reset drops it locally.

Stored content is trusted ambient state: the Cache never validates it, and a
slot holding malformed JSON reads as empty.
*/
package session
