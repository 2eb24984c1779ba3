package nodeconf

// Args converts a record into -key=value launch flags in key order.
// rpcuser and rpcpassword are always omitted. Values are not quoted.
func Args(r *Record) []string {
	keys := r.Keys()
	args := make([]string, 0, len(keys))
	for _, key := range keys {
		if isCredentialKey(key) {
			continue
		}
		value, _ := r.Get(key)
		args = append(args, "-"+key+"="+value)
	}
	return args
}

func isCredentialKey(key string) bool {
	return key == KeyRPCUser || key == KeyRPCPassword
}
