package discord

import (
	"context"
	"errors"
	"sync"
	"time"
)

const testAPI = "https://discord.test/api"

const testUserJSON = `{
	"id": "896657711104667719",
	"username": "nelly",
	"displayName": "Nelly",
	"discriminator": "0",
	"avatar": "8342729096ea3675442027381ff50dfe",
	"banner": null,
	"email": "nelly@example.com",
	"verified": true,
	"mfa_enabled": true,
	"public_flags": 64,
	"flags": 64,
	"locale": "en-US",
	"global_name": "Nelly G",
	"premium_type": 1
}`

type getCall struct {
	URL   string
	Token string
	At    time.Time
}

type fakeResponse struct {
	body []byte
	err  error
}

// fakeGetter responde por URL y registra cada llamada.
type fakeGetter struct {
	mu        sync.Mutex
	responses map[string]fakeResponse
	calls     []getCall
}

func newFakeGetter() *fakeGetter {
	return &fakeGetter{responses: map[string]fakeResponse{}}
}

func (g *fakeGetter) on(path, body string) *fakeGetter {
	g.responses[testAPI+path] = fakeResponse{body: []byte(body)}
	return g
}

func (g *fakeGetter) onRaw(path string, body []byte) *fakeGetter {
	g.responses[testAPI+path] = fakeResponse{body: body}
	return g
}

func (g *fakeGetter) fail(path string, err error) *fakeGetter {
	g.responses[testAPI+path] = fakeResponse{err: err}
	return g
}

func (g *fakeGetter) Get(_ context.Context, url, accessToken string) ([]byte, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, getCall{URL: url, Token: accessToken, At: time.Now()})
	r, ok := g.responses[url]
	if !ok {
		return nil, errors.New("unexpected GET " + url)
	}
	return r.body, r.err
}

func (g *fakeGetter) urls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.calls))
	for i, c := range g.calls {
		out[i] = c.URL
	}
	return out
}

func (g *fakeGetter) call(i int) getCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[i]
}

func noopVerify(_ context.Context, _, _ string, p *Profile, done VerifyDone) { done(nil, p) }

func testOptions(scopes ...Scope) Options {
	return Options{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		CallbackURL:  "https://app.test/auth/discord/callback",
		Scope:        scopes,
	}
}
