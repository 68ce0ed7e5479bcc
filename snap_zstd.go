package ffs

import "github.com/klauspost/compress/zstd"

func init() {
	registerCompHandler(Zstd, &compHandler{
		compress: func(buf []byte) ([]byte, error) {
			enc, err := zstd.NewWriter(nil)
			if err != nil {
				return nil, err
			}
			defer enc.Close()
			return enc.EncodeAll(buf, nil), nil
		},
		decompress: func(buf []byte) ([]byte, error) {
			dec, err := zstd.NewReader(nil)
			if err != nil {
				return nil, err
			}
			defer dec.Close()
			return dec.DecodeAll(buf, nil)
		},
	})
}
