// Package bind decodes resolved option values onto typed argument structs.
//
// Struct templates declare their options as tagged fields; after the option
// set resolves a call, Build copies the values onto a fresh struct in three
// stages:
//   - defaults: a prototype value, deep copied (WithDefaults)
//   - decode: mapstructure decode keyed by the `option` tag (WithTagName,
//     WithDecodeHooks, WithStrictKeys, WithWeakTyping)
//   - validate: a validator over the decoded struct (WithValidator), or the
//     struct's own Validate method (WithSelfValidation)
//
// Failures wrap ErrDefaults, ErrDecode or ErrValidate inside a StageError.
package bind
