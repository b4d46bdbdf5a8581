// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/taibuivan/securepass/internal/platform/constants"
	"github.com/taibuivan/securepass/internal/platform/ctxutil"
)

// # Client Address

/*
ClientIP resolves the caller address once per request and stores it for
[RealIP].

Forwarding headers are honoured only when the TCP peer is inside trusted.
X-Forwarded-For is walked from the right, skipping trusted hops, so a client
cannot prepend addresses of its own. With no trusted prefixes the peer address
is always used.

Parameters:
  - trusted: netip.Prefix list of reverse proxies
*/
func ClientIP(trusted []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			ip := resolveClientIP(request, trusted)
			next.ServeHTTP(writer, request.WithContext(ctxutil.WithClientIP(request.Context(), ip)))
		})
	}
}

// RealIP returns the address chosen by [ClientIP], or the TCP peer when the
// middleware is not mounted.
func RealIP(request *http.Request) string {
	if ip := ctxutil.GetClientIP(request.Context()); ip != "" {
		return ip
	}
	return peerHost(request.RemoteAddr)
}

func resolveClientIP(request *http.Request, trusted []netip.Prefix) string {
	peer := peerHost(request.RemoteAddr)

	addr, err := netip.ParseAddr(peer)
	if err != nil || !isTrusted(addr, trusted) {
		return peer
	}

	if forwarded := request.Header.Values(constants.HeaderXForwardedFor); len(forwarded) > 0 {
		hops := strings.Split(strings.Join(forwarded, ","), ",")

		client := addr
		for i := len(hops) - 1; i >= 0; i-- {
			hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				break
			}
			client = hop.Unmap()
			if !isTrusted(client, trusted) {
				break
			}
		}
		return client.String()
	}

	if realIP, err := netip.ParseAddr(strings.TrimSpace(request.Header.Get(constants.HeaderXRealIP))); err == nil {
		return realIP.Unmap().String()
	}

	return peer
}

func isTrusted(addr netip.Addr, trusted []netip.Prefix) bool {
	addr = addr.Unmap()
	for _, prefix := range trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

func peerHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
