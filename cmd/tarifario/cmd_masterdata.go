package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tarifario/internal"
	"tarifario/internal/masterdata"
)

func deleteCmd(what string, del func(cmd *cobra.Command, id string) error) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a " + what,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := del(cmd, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s deleted\n", what, args[0])
			return nil
		},
	}
}

func newPOSCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "pos", Short: "Points of sale"}

	var p internal.PointOfSale
	save := &cobra.Command{
		Use:   "save",
		Short: "Create or update a point of sale",
		RunE: func(cmd *cobra.Command, args []string) error {
			saved, err := masterdata.NewService(a.db, a.logger).SavePointOfSale(cmd.Context(), p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pos saved id=%s code=%s zone=%s\n", saved.ID, saved.Code, saved.Zone)
			return nil
		},
	}
	f := save.Flags()
	f.StringVar(&p.ID, "id", "", "existing id to update")
	f.StringVar(&p.Code, "code", "", "store code, up to 2 digits")
	f.StringVar(&p.Zone, "zone", "", "tariff zone, up to 3 characters")
	f.StringVar(&p.Group, "group", "", "store group")
	f.StringVar(&p.Address, "address", "", "street address")
	f.StringVar(&p.City, "city", "", "town")

	list := &cobra.Command{
		Use:   "list",
		Short: "List points of sale",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.db.GetAppData(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCódigo\tZona\tGrupo\tPoblación")
			for _, p := range data.POS {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Code, p.Zone, p.Group, p.City)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(save, list, deleteCmd("pos", func(cmd *cobra.Command, id string) error {
		return masterdata.NewService(a.db, a.logger).DeletePointOfSale(cmd.Context(), id)
	}))
	return cmd
}

func newFamilyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "family", Short: "Article families"}

	var (
		fam    internal.Family
		create bool
	)
	save := &cobra.Command{
		Use:   "save",
		Short: "Add or rename a family",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := masterdata.NewService(a.db, a.logger).SaveFamily(cmd.Context(), fam, create); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "family saved id=%s name=%s\n", fam.ID, fam.Name)
			return nil
		},
	}
	save.Flags().StringVar(&fam.ID, "id", "", "family code")
	save.Flags().StringVar(&fam.Name, "name", "", "family name")
	save.Flags().BoolVar(&create, "create", false, "add a new family instead of renaming")

	list := &cobra.Command{
		Use:   "list",
		Short: "List families in code order",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.db.GetAppData(cmd.Context())
			if err != nil {
				return err
			}
			families := append([]internal.Family(nil), data.Families...)
			masterdata.SortFamilies(families)
			for _, f := range families {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", f.ID, f.Name)
			}
			return nil
		},
	}

	cmd.AddCommand(save, list, deleteCmd("family", func(cmd *cobra.Command, id string) error {
		return masterdata.NewService(a.db, a.logger).DeleteFamily(cmd.Context(), id)
	}))
	return cmd
}

func newGroupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "group", Short: "Store groups"}

	var g internal.Group
	save := &cobra.Command{
		Use:   "save",
		Short: "Create or rename a group",
		RunE: func(cmd *cobra.Command, args []string) error {
			saved, err := masterdata.NewService(a.db, a.logger).SaveGroup(cmd.Context(), g)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "group saved id=%s name=%s\n", saved.ID, saved.Name)
			return nil
		},
	}
	save.Flags().StringVar(&g.ID, "id", "", "existing id to update")
	save.Flags().StringVar(&g.Name, "name", "", "group name")

	cmd.AddCommand(save, deleteCmd("group", func(cmd *cobra.Command, id string) error {
		return masterdata.NewService(a.db, a.logger).DeleteGroup(cmd.Context(), id)
	}))
	return cmd
}

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "user", Short: "Back-office users"}

	var (
		u    internal.User
		role string
	)
	save := &cobra.Command{
		Use:   "save",
		Short: "Create or update a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			u.Role = internal.UserRole(role)
			saved, err := masterdata.NewService(a.db, a.logger).SaveUser(cmd.Context(), u)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user saved id=%s name=%s group=%s\n", saved.ID, saved.Name, saved.Group)
			return nil
		},
	}
	f := save.Flags()
	f.StringVar(&u.ID, "id", "", "existing id to update")
	f.StringVar(&u.Name, "name", "", "login name")
	f.StringVar(&u.Password, "password", "", "password")
	f.StringVar(&u.Zone, "zone", "", "zone of the user's store")
	f.StringVar(&u.Group, "group", "", "group (default: the group of the zone's store)")
	f.StringVar(&u.Department, "department", "", "department")
	f.StringVar(&role, "role", string(internal.RoleNormal), "Normal|Supervisor|admin")
	f.BoolVar(&u.ShowPVP, "show-pvp", false, "show retail prices on price lists")

	list := &cobra.Command{
		Use:   "list",
		Short: "List users in store order",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := masterdata.NewService(a.db, a.logger).ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNombre\tZona\tGrupo\tRol")
			for _, u := range users {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Zone, u.Group, u.Role)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(save, list, deleteCmd("user", func(cmd *cobra.Command, id string) error {
		return masterdata.NewService(a.db, a.logger).DeleteUser(cmd.Context(), id)
	}))
	return cmd
}
