//go:build !unix

package region

func mapanon(size int, populate, lock bool) ([]byte, bool, error) {
	return make([]byte, size), false, nil
}

func unmap(data []byte) error {
	return nil
}
