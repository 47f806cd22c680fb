package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mateusmacedo/go-ticket-booking/internal/booking/application"
	"github.com/mateusmacedo/go-ticket-booking/internal/booking/domain"
	pkgApp "github.com/mateusmacedo/go-ticket-booking/pkg/application"
)

const menu = `Enter the option:
1. Book a train
2. Cancel a train booking
3. Print a train booking
4. Book a vehicle
5. Cancel a vehicle booking
6. Print a vehicle booking
7. Copy vehicles into trains
0. Exit
`

// desk drives one interactive session for a single user.
type desk struct {
	in       *bufio.Reader
	out      io.Writer
	trains   *application.BookingService[domain.Train]
	vehicles *application.BookingService[domain.Vehicle]
	logger   pkgApp.AppLogger
}

func newDesk(in io.Reader, out io.Writer, trains *application.BookingService[domain.Train], vehicles *application.BookingService[domain.Vehicle], logger pkgApp.AppLogger) *desk {
	return &desk{
		in:       bufio.NewReader(in),
		out:      out,
		trains:   trains,
		vehicles: vehicles,
		logger:   logger,
	}
}

// run asks who the user is, then loops on the menu until exit or end of input.
func (d *desk) run(ctx context.Context, trainStore domain.Store[domain.Train], vehicleStore domain.Store[domain.Vehicle]) error {
	user, err := d.readUser()
	if err != nil {
		return ignoreEOF(err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(d.out, menu)
		option, err := d.readLine("")
		if err != nil {
			return ignoreEOF(err)
		}

		switch option {
		case "0":
			return nil
		case "1":
			err = bookOn(ctx, d, d.trains, user)
		case "2":
			err = cancelOn(ctx, d, d.trains, user)
		case "3":
			err = printOn(ctx, d, d.trains, user)
		case "4":
			err = bookOn(ctx, d, d.vehicles, user)
		case "5":
			err = cancelOn(ctx, d, d.vehicles, user)
		case "6":
			err = printOn(ctx, d, d.vehicles, user)
		case "7":
			var n int
			n, err = application.MigrateVehicles(ctx, vehicleStore, trainStore, d.logger)
			if err == nil {
				fmt.Fprintf(d.out, "Copied %d vehicle(s) into trains\n", n)
			}
		default:
			fmt.Fprintln(d.out, "Invalid option")
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(d.out, "Error: %v\n", err)
		}
	}
}

func (d *desk) readUser() (domain.User, error) {
	var user domain.User
	var err error
	if user.UserID, err = d.readLine("Enter User ID: "); err != nil {
		return user, err
	}
	if user.Name, err = d.readLine("Enter Name: "); err != nil {
		return user, err
	}
	if user.AadharCard, err = d.readLine("Enter Aadhar Card Number: "); err != nil {
		return user, err
	}
	return user, nil
}

// readLine prints prompt and returns the next trimmed line. A final line
// without a newline is still returned.
func (d *desk) readLine(prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(d.out, prompt)
	}
	line, err := d.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func bookOn[E any](ctx context.Context, d *desk, service *application.BookingService[E], user domain.User) error {
	title := domain.Title(service.Kind())

	entityID, err := d.readLine(fmt.Sprintf("Enter %s ID: ", title))
	if err != nil {
		return err
	}
	name, err := d.readLine(fmt.Sprintf("Enter %s Name: ", title))
	if err != nil {
		return err
	}
	source, err := d.readLine("Enter Source Station: ")
	if err != nil {
		return err
	}
	destination, err := d.readLine("Enter Destination Station: ")
	if err != nil {
		return err
	}

	if err := service.Book(ctx, entityID, user, name, source, destination); err != nil {
		return err
	}
	fmt.Fprintf(d.out, "%s booked successfully!\n", title)
	return nil
}

func cancelOn[E any](ctx context.Context, d *desk, service *application.BookingService[E], user domain.User) error {
	entityID, err := d.readLine(fmt.Sprintf("Enter %s ID: ", domain.Title(service.Kind())))
	if err != nil {
		return err
	}

	result, err := service.CancelBooking(ctx, entityID, user.UserID)
	if err != nil {
		return err
	}
	fmt.Fprintln(d.out, result.Message())
	return nil
}

func printOn[E any](ctx context.Context, d *desk, service *application.BookingService[E], user domain.User) error {
	entityID, err := d.readLine(fmt.Sprintf("Enter %s ID: ", domain.Title(service.Kind())))
	if err != nil {
		return err
	}
	return service.PrintBooking(ctx, d.out, entityID, user.UserID)
}

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
