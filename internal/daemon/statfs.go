package daemon

import "golang.org/x/sys/unix"

// cacheFreeMiB reports free space on the filesystem holding the image
// cache. Best effort; zero when the path cannot be statted.
func cacheFreeMiB(path string) int64 {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0
	}
	return int64(st.Bavail) * int64(st.Bsize) / (1024 * 1024)
}
