/*
Package ntrue is a pure Go implementation of the NTRUEncrypt public-key
cryptosystem over the truncated polynomial ring Z_q[x]/(x^N - 1). It provides
asymmetric key generation, encryption and decryption together with the
fixed-length binary encodings of keys and ciphertexts, for a family of named
parameter sets up to the 256-bit security level.
*/
package ntrue
