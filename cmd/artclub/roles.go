// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/skku-artclub/artclub/internal/rbac"
	"github.com/spf13/cobra"
)

var rolesJSON bool

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Print every role and the permissions it grants",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if rolesJSON {
			catalog := make(map[string][]rbac.Permission, len(rbac.AllRoles()))
			for _, role := range rbac.AllRoles() {
				catalog[role.String()] = rbac.RolePermissions(role)
			}
			data, err := sonic.ConfigStd.MarshalIndent(catalog, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, string(data))
			return err
		}
		for _, role := range rbac.AllRoles() {
			names := make([]string, 0)
			for _, p := range rbac.RolePermissions(role) {
				name := p.String()
				if rbac.IsOwnershipRestricted(p) {
					name += " (own)"
				}
				names = append(names, name)
			}
			if _, err := fmt.Fprintf(out, "%-24s %s\n", role, strings.Join(names, ", ")); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rolesCmd.Flags().BoolVar(&rolesJSON, "json", false, "print the catalog as JSON")
}
