package ffs

// storeAt serializes v into the entry at logical within lay, writing its
// sectors in order. The buffer is zeroed, so short encodings pad with
// zeros up to the entry boundary.
func storeAt(d BlockDevice, lay layout, logical Addr, v sectorEncoder) error {
	buf := make([]byte, int(lay.blocksPerEntry)*BlockLen)
	if err := v.encode(newWriter(buf)); err != nil {
		return err
	}
	sector := lay.nth(logical)
	for i := Addr(0); i < lay.blocksPerEntry; i++ {
		if err := d.WriteBlock(sector+i, buf[int(i)*BlockLen:int(i+1)*BlockLen]); err != nil {
			return err
		}
	}
	return nil
}

// loadAt reads the entry at logical within lay and decodes it into v.
func loadAt(d BlockDevice, lay layout, logical Addr, v sectorDecoder) error {
	buf := make([]byte, int(lay.blocksPerEntry)*BlockLen)
	sector := lay.nth(logical)
	for i := Addr(0); i < lay.blocksPerEntry; i++ {
		if err := d.ReadBlock(sector+i, buf[int(i)*BlockLen:int(i+1)*BlockLen]); err != nil {
			return err
		}
	}
	return v.decode(newReader(buf))
}

// eraseAt zeroes the entry at logical within lay.
func eraseAt(d BlockDevice, lay layout, logical Addr) error {
	var zero [BlockLen]byte
	sector := lay.nth(logical)
	for i := Addr(0); i < lay.blocksPerEntry; i++ {
		if err := d.WriteBlock(sector+i, zero[:]); err != nil {
			return err
		}
	}
	return nil
}

// storeData writes the payload into the given data blocks, one BlockLen
// chunk per address. The final chunk may be short; its sector is padded
// with zeros.
func storeData(d BlockDevice, addrs []Addr, data []byte) error {
	if need := blocksNeeded(len(data)); len(addrs) < need {
		return bufferTooSmall(need, len(addrs))
	}
	var buf [BlockLen]byte
	for i := 0; i*BlockLen < len(data); i++ {
		chunk := data[i*BlockLen:]
		if len(chunk) > BlockLen {
			chunk = chunk[:BlockLen]
		}
		n := copy(buf[:], chunk)
		for j := n; j < BlockLen; j++ {
			buf[j] = 0
		}
		if err := d.WriteBlock(layoutData.nth(addrs[i]), buf[:]); err != nil {
			return err
		}
	}
	return nil
}
