/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package pdfobj

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"crypto/rc4"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
)

// padding is the standard security handler's fixed password-padding string
// (PDF32000 7.6.3.3, algorithm 2 step a), used to pad/truncate passwords to
// exactly 32 bytes for revisions 2-4.
var padding = []byte{
	0x28, 0xBF, 0x4E, 0x5E, 0x4E, 0x75, 0x8A, 0x41, 0x64, 0x00, 0x4E, 0x56, 0xFF,
	0xFA, 0x01, 0x08, 0x2E, 0x2E, 0x00, 0xB6, 0xD0, 0x68, 0x3E, 0x80, 0x2F, 0x0C,
	0xA9, 0xFE, 0x64, 0x53, 0x69, 0x7A,
}

// crypter decrypts strings and streams using the document encryption key.
// Standard security handler revisions 2-6, reader side only: this module
// never writes PDFs, so the key-generation half is absent.
type crypter struct {
	v, r      int
	length    int // key length in bytes
	aes       bool
	key       []byte
	encryptMD bool
}

// newCrypter builds a crypter from the /Encrypt dictionary and trailer,
// authenticating with pass as the user password; owner-password
// authentication is not implemented for any revision. Returns
// (nil, pdfstrings.ErrEncryptedPdfNoPassword-class sentinel handled by the
// caller) when authentication fails.
func newCrypter(encrypt, trailer *Dictionary, pass []byte) (*crypter, error) {
	filterName, _ := encrypt.Get("Filter")
	if filterName.Kind == KindName && filterName.Str != "Standard" {
		return nil, fmt.Errorf("pdfobj: unsupported security handler %q", filterName.Str)
	}

	v, _ := intField(encrypt, "V")
	r, _ := intField(encrypt, "R")
	length, ok := intField(encrypt, "Length")
	if !ok {
		length = 40
	}

	c := &crypter{v: v, r: r, length: length / 8, encryptMD: true}
	if em, ok := encrypt.Get("EncryptMetadata"); ok && em.Kind == KindBool {
		c.encryptMD = em.Bool
	}
	if v >= 4 {
		c.aes = cryptFilterIsAES(encrypt)
	}

	switch {
	case r >= 2 && r <= 4:
		return c.authenticateRC4(encrypt, trailer, pass)
	case r == 5 || r == 6:
		return c.authenticateAES256(encrypt, pass)
	default:
		return nil, fmt.Errorf("pdfobj: unsupported encryption revision R=%d", r)
	}
}

func cryptFilterIsAES(encrypt *Dictionary) bool {
	cf, ok := encrypt.Get("CF")
	if !ok || cf.Kind != KindDict {
		return false
	}
	stmf, ok := encrypt.Get("StmF")
	name := "StdCF"
	if ok && stmf.Kind == KindName {
		name = stmf.Str
	}
	entry, ok := cf.Dict.Get(name)
	if !ok || entry.Kind != KindDict {
		return false
	}
	cfm, ok := entry.Dict.Get("CFM")
	return ok && cfm.Kind == KindName && (cfm.Str == "AESV2" || cfm.Str == "AESV3")
}

func paddedPassword(pass []byte) []byte {
	key := make([]byte, 32)
	n := copy(key, pass)
	if n < 32 {
		copy(key[n:], padding)
	}
	return key
}

// authenticateRC4 implements algorithm 2 (compute encryption key) and
// algorithm 6/4/5 (authenticate user password) for R=2..4.
func (c *crypter) authenticateRC4(encrypt, trailer *Dictionary, pass []byte) (*crypter, error) {
	o, _ := encrypt.Get("O")
	u, _ := encrypt.Get("U")
	p, _ := intField(encrypt, "P")
	var id0 string
	if idArr, ok := trailer.Get("ID"); ok && idArr.Kind == KindArray && len(idArr.Arr) > 0 {
		id0 = idArr.Arr[0].Str
	}

	key := alg2(pass, []byte(o.Str), int32(p), id0, c.r, c.length, c.encryptMD)

	var uCheck []byte
	if c.r == 2 {
		ciph, err := rc4.NewCipher(key)
		if err != nil {
			return nil, err
		}
		uCheck = make([]byte, 32)
		ciph.XORKeyStream(uCheck, padding)
	} else {
		h := md5.New()
		h.Write(padding)
		h.Write([]byte(id0))
		sum := h.Sum(nil)
		ciph, err := rc4.NewCipher(key)
		if err != nil {
			return nil, err
		}
		enc := make([]byte, 16)
		ciph.XORKeyStream(enc, sum)
		for i := 1; i <= 19; i++ {
			xored := xorKey(key, byte(i))
			ciph, _ := rc4.NewCipher(xored)
			next := make([]byte, 16)
			ciph.XORKeyStream(next, enc)
			enc = next
		}
		uCheck = enc
	}

	docU := []byte(u.Str)
	matchLen := 32
	if c.r >= 3 {
		matchLen = 16
	}
	if len(docU) < matchLen || !bytes.Equal(uCheck[:matchLen], docU[:matchLen]) {
		return nil, errWrongPassword
	}
	c.key = key
	return c, nil
}

func xorKey(key []byte, b byte) []byte {
	out := make([]byte, len(key))
	for i, k := range key {
		out[i] = k ^ b
	}
	return out
}

// alg2 computes the RC4/AESV2 file encryption key (PDF32000 7.6.3.3
// Algorithm 2).
func alg2(pass, o []byte, p int32, id0 string, r, keyLen int, encryptMetadata bool) []byte {
	h := md5.New()
	h.Write(paddedPassword(pass))
	h.Write(o)
	var pb [4]byte
	pb[0] = byte(p)
	pb[1] = byte(p >> 8)
	pb[2] = byte(p >> 16)
	pb[3] = byte(p >> 24)
	h.Write(pb[:])
	h.Write([]byte(id0))
	if r >= 4 && !encryptMetadata {
		h.Write([]byte{0xff, 0xff, 0xff, 0xff})
	}
	sum := h.Sum(nil)
	if r >= 3 {
		for i := 0; i < 50; i++ {
			h = md5.New()
			h.Write(sum[:keyLen])
			sum = h.Sum(nil)
		}
		return sum[:keyLen]
	}
	return sum[:5]
}

var errWrongPassword = errors.New("pdfobj: wrong password")

// authenticateAES256 implements algorithm 2.A/2.B for R=5/R=6 (AES-256),
// user-password path only: the owner-password path (which additionally
// needs the U string baked into the hash input) is not implemented, since
// from_path/from_bytes only ever supply one password and the overwhelming
// majority of encrypted-with-a-known-password documents use the user
// password for read access.
func (c *crypter) authenticateAES256(encrypt *Dictionary, pass []byte) (*crypter, error) {
	o, _ := encrypt.Get("O")
	u, _ := encrypt.Get("U")
	ue, _ := encrypt.Get("UE")
	uBytes := []byte(u.Str)
	oBytes := []byte(o.Str)
	ueBytes := []byte(ue.Str)
	if len(uBytes) < 48 || len(oBytes) < 48 {
		return nil, fmt.Errorf("pdfobj: malformed O/U for R=%d", c.r)
	}
	if len(pass) > 127 {
		pass = pass[:127]
	}

	valSalt := uBytes[32:40]
	keySalt := uBytes[40:48]

	validation := alg2b(c.r, append(append([]byte{}, pass...), valSalt...), pass, nil)
	if !bytes.Equal(validation[:32], uBytes[:32]) {
		return nil, errWrongPassword
	}
	if len(ueBytes) < 32 {
		return nil, fmt.Errorf("pdfobj: malformed UE for R=%d", c.r)
	}
	intermediate := alg2b(c.r, append(append([]byte{}, pass...), keySalt...), pass, nil)

	block, err := aes.NewCipher(intermediate[:32])
	if err != nil {
		return nil, err
	}
	iv := make([]byte, aes.BlockSize)
	fileKey := make([]byte, 32)
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(fileKey, ueBytes[:32])

	c.key = fileKey
	c.aes = true
	c.length = 32
	return c, nil
}

// alg2b computes the hardened hash used by R5 (plain SHA-256) and R6
// (the 64-round mixing hash of ISO 32000-2 7.6.4.3.4).
func alg2b(r int, data, pwd, userKey []byte) []byte {
	if r == 5 {
		sum := sha256.Sum256(data)
		return sum[:]
	}
	h := sha256.Sum256(data)
	k := h[:]
	for round := 0; ; round++ {
		input := bytes.Repeat(append(append(append([]byte{}, pwd...), k...), userKey...), 64)
		block, err := aes.NewCipher(k[:16])
		if err != nil {
			return k
		}
		e := make([]byte, len(input))
		cipher.NewCBCEncrypter(block, k[16:32]).CryptBlocks(e, input)

		sum := 0
		for i := 0; i < 16; i++ {
			sum += int(e[i]) % 3
		}
		switch sum % 3 {
		case 0:
			s := sha256.Sum256(e)
			k = s[:]
		case 1:
			s := sha512.Sum384(e)
			k = s[:]
		case 2:
			s := sha512.Sum512(e)
			k = s[:]
		}
		if round >= 63 && int(e[len(e)-1]) <= round-32 {
			break
		}
	}
	return k[:32]
}

// objectKey derives the per-object RC4/AES key (PDF32000 algorithm 1),
// unused for AES-256 (R5/R6 use the file key directly for every object).
func (c *crypter) objectKey(num, gen int) []byte {
	if c.r >= 5 {
		return c.key
	}
	key := append([]byte{}, c.key...)
	key = append(key,
		byte(num), byte(num>>8), byte(num>>16),
		byte(gen), byte(gen>>8),
	)
	if c.aes {
		key = append(key, 0x73, 0x41, 0x6C, 0x54) // "sAlT"
	}
	sum := md5.Sum(key)
	n := len(c.key) + 5
	if n > 16 {
		n = 16
	}
	return sum[:n]
}

func (c *crypter) decryptBytes(num, gen int, data []byte) []byte {
	key := c.objectKey(num, gen)
	if c.aes {
		return aesCBCDecrypt(key, data)
	}
	ciph, err := rc4.NewCipher(key)
	if err != nil {
		return data
	}
	out := make([]byte, len(data))
	ciph.XORKeyStream(out, data)
	return out
}

func (c *crypter) decryptStream(num, gen int, s *Stream) []byte {
	return c.decryptBytes(num, gen, s.Raw)
}

func aesCBCDecrypt(key, data []byte) []byte {
	if len(data) < aes.BlockSize {
		return nil
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return data
	}
	iv := data[:aes.BlockSize]
	ciphertext := data[aes.BlockSize:]
	if len(ciphertext)%aes.BlockSize != 0 {
		return data
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ciphertext)
	// PKCS#7 unpad.
	if n := len(out); n > 0 {
		pad := int(out[n-1])
		if pad > 0 && pad <= aes.BlockSize && pad <= n {
			out = out[:n-pad]
		}
	}
	return out
}
