// Package auth provides credential attachment for outbound requests.
//
// A TokenSource produces bearer credentials on demand; Bearer wraps one in a
// header interceptor that caches the token and proactively refreshes it when
// a JWT expiry claim says it is about to lapse. APIKey attaches a static
// credential under an arbitrary header. Both return a HeaderInterceptor, so
// they compose with any request pipeline that exposes http.Header before
// send.
package auth
