package api

import (
	"github.com/filecoin-project/go-jsonrpc/auth"
)

const (
	PermRead  auth.Permission = "read" // default
	PermWrite auth.Permission = "write"
	PermAdmin auth.Permission = "admin"
)

var AllPermissions = []auth.Permission{PermRead, PermWrite, PermAdmin}
var DefaultPerms = []auth.Permission{PermRead}

func permissionedProxies(in, out interface{}) {
	outs := GetInternalStructs(out)
	for _, o := range outs {
		auth.PermissionedProxy(AllPermissions, DefaultPerms, in, o)
	}
}

func PermissionedGatewayAPI(a Gateway) Gateway {
	var out GatewayStruct
	permissionedProxies(a, &out)
	return &out
}
