// Package password implements secret hashing and verification with Argon2id
// defaults. Credential stores use it for both recovery answers and
// credentials.
//
// # Output format
//
// Hashes are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// Verification also accepts bcrypt hashes imported from older systems, and
// [Argon2.NeedsRehash] reports them so the store can re-hash on the next
// successful update.
//
// # What this package must NOT do
//
//   - Store or retrieve secrets. Callers supply plaintext and receive hashes.
//   - Import any other goRecover package.
//   - Log plaintext secrets.
package password
