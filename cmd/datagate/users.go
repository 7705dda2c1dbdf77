package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/datagate/internal/app"
	dto "github.com/dropDatabas3/datagate/internal/http/dto/admin"
	"github.com/dropDatabas3/datagate/internal/http/services"
	adminsvc "github.com/dropDatabas3/datagate/internal/http/services/admin"
)

// usersCmd gestiona el archivo de usuarios sin levantar el servidor. Usa los
// mismos services que la API admin.
func (c *cli) usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Gestión offline del archivo de usuarios",
	}

	withAdmin := func(run func(cmd *cobra.Command, args []string, svc adminsvc.AdminService) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			ctr, err := app.Open(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			defer ctr.Close()
			svcs := services.New(services.Deps{
				Users:          ctr.Users,
				Access:         ctr.Access,
				Sessions:       ctr.Sessions,
				PasswordScheme: ctr.PasswordScheme,
				Warehouse:      ctr.Warehouse,
				Driver:         c.cfg.Warehouse.Driver,
				Cache:          ctr.Cache,
				UsersFile:      c.cfg.UsersFile,
			})
			return run(cmd, args, svcs.Admin.Users)
		}
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Lista usuarios, rol y cantidad de tablas",
		Args:  cobra.NoArgs,
		RunE: withAdmin(func(cmd *cobra.Command, _ []string, svc adminsvc.AdminService) error {
			users, err := svc.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			tw := tablewriter.NewWriter(cmd.OutOrStdout())
			tw.SetHeader([]string{"Username", "Role", "Tables", "Row filters"})
			tw.SetAutoFormatHeaders(false)
			tw.SetAlignment(tablewriter.ALIGN_LEFT)
			for _, u := range users {
				filters := "no"
				if u.HasRowFilters {
					filters = "yes"
				}
				tw.Append([]string{u.Username, string(u.Role), strconv.Itoa(u.TableCount), filters})
			}
			tw.Render()
			return nil
		}),
	}

	var addReq dto.CreateUserRequest
	add := &cobra.Command{
		Use:   "add <username>",
		Short: "Crea un usuario",
		Args:  cobra.ExactArgs(1),
		RunE: withAdmin(func(cmd *cobra.Command, args []string, svc adminsvc.AdminService) error {
			addReq.Username = args[0]
			sum, err := svc.CreateUser(cmd.Context(), addReq)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User '%s' added successfully!\n", sum.Username)
			return nil
		}),
	}
	add.Flags().StringVar(&addReq.Password, "password", "", "contraseña")
	add.Flags().StringVar(&addReq.Role, "role", "user", "admin | user")
	_ = add.MarkFlagRequired("password")

	del := &cobra.Command{
		Use:   "delete <username>",
		Short: "Borra un usuario (admin no se puede borrar)",
		Args:  cobra.ExactArgs(1),
		RunE: withAdmin(func(cmd *cobra.Command, args []string, svc adminsvc.AdminService) error {
			if err := svc.DeleteUser(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User '%s' deleted successfully!\n", args[0])
			return nil
		}),
	}

	var tables, filters []string
	grant := &cobra.Command{
		Use:   "grant <username>",
		Short: "Reemplaza las tablas y row filters de un usuario",
		Args:  cobra.ExactArgs(1),
		RunE: withAdmin(func(cmd *cobra.Command, args []string, svc adminsvc.AdminService) error {
			req := dto.UpdateAccessRequest{Tables: tables, RowFilters: map[string]string{}}
			for _, f := range filters {
				table, expr, ok := strings.Cut(f, "=")
				if !ok || strings.TrimSpace(table) == "" {
					return fmt.Errorf("invalid --filter %q, expected dataset.table=<condition>", f)
				}
				req.RowFilters[strings.TrimSpace(table)] = expr
			}
			out, err := svc.UpdateAccess(cmd.Context(), args[0], req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Access settings for %s updated successfully! (%d tables, %d row filters)\n",
				out.Username, len(out.Tables), len(out.RowFilters))
			return nil
		}),
	}
	grant.Flags().StringSliceVar(&tables, "table", nil, "tabla permitida (dataset.table), repetible")
	grant.Flags().StringArrayVar(&filters, "filter", nil, "row filter dataset.table=<condición>, repetible")

	cmd.AddCommand(list, add, del, grant)
	return cmd
}
