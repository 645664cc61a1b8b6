// Package skematree provides:
//
// - Templates compiled from declarations (Decl) with reserved "@" keys
// - Observable node trees built from JSON values (Scalar, Sequence, FixedKey, DynamicKey)
// - Validation through constraint chains and enumerations, with Issues (JSON Pointer, code, message)
// - Deferred references that resolve once an ancestor of the needed template is found
// - Order-preserving decode (go-json, encoding/json or YAML) and serialization
//
// Design policy:
// - Keep the public API in the root package; put token handling under internal/ and source/.
// - Bad data never panics: mistyped input is logged and replaced by defaults.
// - Schema mistakes fail at Compile time.
//
// Typical usage:
//
//	user := skematree.MustCompile(skematree.Decl{
//		"@type": skematree.TypeObject,
//		"name":  skematree.Decl{"@type": skematree.TypeString},
//		"tags":  skematree.Decl{"@type": skematree.TypeArray, "*": skematree.Decl{"@type": skematree.TypeString}},
//	})
//	n, warnings, err := user.Parse(data, skematree.DecodeOpt{OnDuplicateKey: skematree.Warn})
//	issues := skematree.Check(n)
//	out, err := skematree.Marshal(n, skematree.EncodeOpt{IgnoreUnused: true})
package skematree
