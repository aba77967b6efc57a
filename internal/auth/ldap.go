package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDirectoryEntry     = errors.New("directory entry unusable")
)

// DirectoryUser is what the workshop directory knows about a signed-in user
type DirectoryUser struct {
	Username string
	Email    string
	Name     string
}

// Directory authenticates users against an external account directory
type Directory interface {
	Authenticate(ctx context.Context, username, password string) (*DirectoryUser, error)
}

// LDAPDirectory binds as the user (user@domain) and then reads their attributes.
type LDAPDirectory struct {
	Server     string
	BaseDN     string
	UserDomain string
	Timeout    time.Duration
}

func NewLDAPDirectory(server, baseDN, userDomain string) *LDAPDirectory {
	return &LDAPDirectory{Server: server, BaseDN: baseDN, UserDomain: userDomain, Timeout: 10 * time.Second}
}

// NormalizeUsername strips a trailing @domain (any case) so users can type either form
func NormalizeUsername(username, domain string) string {
	username = strings.TrimSpace(username)
	if domain == "" {
		return username
	}
	suffix := "@" + strings.ToLower(domain)
	if strings.HasSuffix(strings.ToLower(username), suffix) {
		return username[:len(username)-len(suffix)]
	}
	return username
}

func (d *LDAPDirectory) bindDN(username string) string {
	if d.UserDomain == "" {
		return username
	}
	return fmt.Sprintf("%s@%s", username, strings.ToUpper(d.UserDomain))
}

func (d *LDAPDirectory) Authenticate(ctx context.Context, username, password string) (*DirectoryUser, error) {
	username = NormalizeUsername(username, d.UserDomain)
	// an empty password performs an unauthenticated bind, which most servers accept
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l, err := ldap.DialURL(d.Server, ldap.DialWithDialer(&net.Dialer{Timeout: d.Timeout}))
	if err != nil {
		return nil, fmt.Errorf("ldap dial %s: %w", d.Server, err)
	}
	defer l.Close()
	l.SetTimeout(d.Timeout)

	if err := l.Bind(d.bindDN(username), password); err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("ldap bind: %w", err)
	}

	searchReq := ldap.NewSearchRequest(
		d.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		1,
		int(d.Timeout.Seconds()),
		false,
		fmt.Sprintf("(sAMAccountName=%s)", ldap.EscapeFilter(username)),
		[]string{"cn", "mail", "displayName"},
		nil,
	)
	sr, err := l.Search(searchReq)
	if err != nil {
		return nil, fmt.Errorf("ldap search: %w", err)
	}
	if len(sr.Entries) == 0 {
		return nil, fmt.Errorf("%w: no entry for %s", ErrDirectoryEntry, username)
	}

	entry := sr.Entries[0]
	user := &DirectoryUser{
		Username: username,
		Email:    strings.ToLower(entry.GetAttributeValue("mail")),
		Name:     entry.GetAttributeValue("displayName"),
	}
	if user.Email == "" {
		return nil, fmt.Errorf("%w: %s has no mail attribute", ErrDirectoryEntry, username)
	}
	if user.Name == "" {
		user.Name = entry.GetAttributeValue("cn")
	}
	if user.Name == "" {
		user.Name = username
	}
	return user, nil
}
