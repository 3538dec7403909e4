// Package entity defines the challenge catalog of the flags feature.
package entity

import "sort"

// PointsPerFlag is the fixed credit for every accepted flag.
const PointsPerFlag = 100

// Flag is a static challenge definition. Secret is compared byte-for-byte.
type Flag struct {
	Slug   string
	Title  string
	Secret string
	Points int
}

// Catalog maps a challenge slug to its definition. It is read-only at runtime.
type Catalog struct {
	flags map[string]Flag
}

// NewCatalog builds a catalog; zero Points default to PointsPerFlag.
func NewCatalog(flags ...Flag) *Catalog {
	c := &Catalog{flags: make(map[string]Flag, len(flags))}
	for _, f := range flags {
		if f.Points == 0 {
			f.Points = PointsPerFlag
		}
		c.flags[f.Slug] = f
	}
	return c
}

// Lookup returns the flag for slug.
func (c *Catalog) Lookup(slug string) (Flag, bool) {
	f, ok := c.flags[slug]
	return f, ok
}

// List returns every flag sorted by slug.
func (c *Catalog) List() []Flag {
	out := make([]Flag, 0, len(c.flags))
	for _, f := range c.flags {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out
}

// DefaultCatalog returns the challenges shipped with the training backend.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		Flag{Slug: "sqli-login", Title: "SQL injection in login", Secret: "KURU{sql_1nj3ct10n_l0g1n_byp4ss}"},
		Flag{Slug: "xss-reflected", Title: "Reflected XSS in search", Secret: "KURU{r3fl3ct3d_xss_f0und}"},
		Flag{Slug: "xss-stored", Title: "Stored XSS in reviews", Secret: "KURU{st0r3d_xss_p3rs1st3nt}"},
		Flag{Slug: "idor-profile", Title: "IDOR on user profiles", Secret: "KURU{1d0r_pr0f1l3_l34k}"},
		Flag{Slug: "ssrf-fetch", Title: "SSRF through URL preview", Secret: "KURU{ssrf_1nt3rn4l_m3t4d4t4}"},
		Flag{Slug: "jwt-none", Title: "Weak JWT handling", Secret: "KURU{jwt_w34k_s3cr3t_cr4ck3d}"},
		Flag{Slug: "registration-bypass", Title: "Registration step bypass", Secret: "KURU{st3p_sk1pp3d_r3g1str4t10n}"},
		Flag{Slug: "nosql-injection", Title: "NoSQL operator injection", Secret: "KURU{n0sql_0p3r4t0r_1nj3ct10n}"},
	)
}
