package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/books/internal/model"
	"github.com/cleared-dev/books/internal/sales"
)

func newOrderCommand(dir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Sales orders",
	}
	cmd.AddCommand(newOrderPlaceCommand(dir), newOrderListCommand(dir))
	return cmd
}

func newOrderPlaceCommand(dir *string) *cobra.Command {
	var customer, date, subtotal, tax, shipping, total, wallet string
	var items []string

	cmd := &cobra.Command{
		Use:   "place",
		Short: "Place an order and post it",
		Long: `Place an order. Items are product:quantity:unit_price[:unit_cost]; when
every item has a unit cost, cost of goods uses it instead of the configured ratio.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := sales.OrderInput{CustomerID: customer}
			var err error
			if in.Date, err = parseDate(date); err != nil {
				return err
			}
			if in.Subtotal, err = parseAmount("subtotal", subtotal); err != nil {
				return err
			}
			if in.TaxAmount, err = parseAmount("tax", tax); err != nil {
				return err
			}
			if in.ShippingCost, err = parseAmount("shipping", shipping); err != nil {
				return err
			}
			if in.Total, err = parseAmount("total", total); err != nil {
				return err
			}
			if in.WalletAmount, err = parseAmount("wallet", wallet); err != nil {
				return err
			}
			for _, raw := range items {
				it, err := parseItem(raw)
				if err != nil {
					return err
				}
				in.Items = append(in.Items, it)
			}

			s, err := open(cmd, *dir)
			if err != nil {
				return err
			}
			order, err := s.Sales.PlaceOrder(cmd.Context(), s.lock, in)
			if order.ID != "" {
				s.Commit(cmd.Context(), "order: "+order.ID)
				fmt.Fprintf(cmd.OutOrStdout(), "Placed %s total %s\n", order.ID, money(order.Total))
			}
			return err
		},
	}
	cmd.Flags().StringVar(&customer, "customer", "", "customer ID")
	cmd.Flags().StringVar(&date, "date", "", "order date (YYYY-MM-DD), default today")
	cmd.Flags().StringVar(&subtotal, "subtotal", "", "subtotal; default sum of items")
	cmd.Flags().StringVar(&tax, "tax", "", "tax amount")
	cmd.Flags().StringVar(&shipping, "shipping", "", "shipping charged")
	cmd.Flags().StringVar(&total, "total", "", "order total; default subtotal+tax+shipping")
	cmd.Flags().StringVar(&wallet, "wallet", "", "portion paid from the customer's wallet")
	cmd.Flags().StringArrayVar(&items, "item", nil, "product:quantity:unit_price[:unit_cost], repeatable")
	return cmd
}

func parseItem(raw string) (model.OrderItem, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return model.OrderItem{}, fmt.Errorf("item %q must be product:quantity:unit_price[:unit_cost]", raw)
	}
	qty, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || qty <= 0 {
		return model.OrderItem{}, fmt.Errorf("item %q: quantity must be a positive integer", raw)
	}
	price, err := parseAmount("unit price", parts[2])
	if err != nil {
		return model.OrderItem{}, err
	}
	it := model.OrderItem{ProductID: parts[0], Name: parts[0], Quantity: qty, UnitPrice: price}
	if len(parts) == 4 && parts[3] != "" {
		cost, err := parseAmount("unit cost", parts[3])
		if err != nil {
			return model.OrderItem{}, err
		}
		it.UnitCost = &cost
	}
	return it, nil
}

func newOrderListCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := open(cmd, *dir)
			if err != nil {
				return err
			}
			orders, err := s.Sales.List(cmd.Context())
			if err != nil {
				return err
			}
			w := table(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tDATE\tCUSTOMER\tSUBTOTAL\tTAX\tSHIPPING\tTOTAL\tWALLET")
			for _, o := range orders {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", o.ID, o.Date.Format(dateFormat), o.CustomerID,
					money(o.Subtotal), money(o.TaxAmount), money(o.ShippingCost), money(o.Total), money(o.WalletAmount))
			}
			return w.Flush()
		},
	}
}
